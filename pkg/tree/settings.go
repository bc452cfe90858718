package tree

import "github.com/vanderheijden86/poolnav/pkg/model"

// Settings are the visibility toggles consulted on every build. Objects
// excluded by settings are left out of the tree entirely.
type Settings struct {
	ShowDefaultTemplates bool `yaml:"show_default_templates" json:"show_default_templates"`
	ShowUserTemplates    bool `yaml:"show_user_templates" json:"show_user_templates"`
	ShowLocalStorage     bool `yaml:"show_local_storage" json:"show_local_storage"`
	ShowHiddenObjects    bool `yaml:"show_hidden_objects" json:"show_hidden_objects"`
}

// DefaultSettings hides the built-in templates and shows everything else.
func DefaultSettings() Settings {
	return Settings{
		ShowDefaultTemplates: false,
		ShowUserTemplates:    true,
		ShowLocalStorage:     true,
		ShowHiddenObjects:    true,
	}
}

// showTemplate applies the template toggles.
func (s Settings) showTemplate(obj model.Object) bool {
	if obj.Bool(model.AttrIsDefaultTemplate) {
		return s.ShowDefaultTemplates
	}
	return s.ShowUserTemplates
}

// showHidden applies the hidden-object toggle.
func (s Settings) showHidden(obj model.Object) bool {
	return s.ShowHiddenObjects || !obj.IsHidden()
}
