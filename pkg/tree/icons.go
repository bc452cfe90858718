package tree

import (
	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/model"
)

// IconKey classifies how a node should be drawn. Mapping a key to a glyph
// or colour is the renderer's job.
type IconKey string

const (
	IconPool                   IconKey = "pool"
	IconHost                   IconKey = "host"
	IconHostDisconnected       IconKey = "host-disconnected"
	IconVMRunning              IconKey = "vm-running"
	IconVMHalted               IconKey = "vm-halted"
	IconVMPaused               IconKey = "vm-paused"
	IconVMSuspended            IconKey = "vm-suspended"
	IconTemplate               IconKey = "template"
	IconSR                     IconKey = "sr"
	IconSRShared               IconKey = "sr-shared"
	IconGroup                  IconKey = IconKey(grouping.IconGroup)
	IconConnectionDisconnected IconKey = "connection-disconnected"
	IconPlaceholder            IconKey = IconKey(grouping.IconPlaceholder)
)

// IconClassifier picks the icon key for a record.
type IconClassifier interface {
	IconFor(obj model.Object) IconKey
}

// IconFunc adapts a function to IconClassifier.
type IconFunc func(obj model.Object) IconKey

// IconFor calls f.
func (f IconFunc) IconFor(obj model.Object) IconKey { return f(obj) }

// DefaultIcons classifies records by type and state.
var DefaultIcons IconClassifier = IconFunc(defaultIcon)

func defaultIcon(obj model.Object) IconKey {
	switch obj.Key.Type {
	case model.TypePool:
		return IconPool
	case model.TypeHost:
		if v, ok := obj.Attrs[model.AttrConnected]; ok && v == false {
			return IconHostDisconnected
		}
		return IconHost
	case model.TypeVM:
		if obj.IsTemplate() {
			return IconTemplate
		}
		switch obj.PowerState() {
		case model.PowerRunning:
			return IconVMRunning
		case model.PowerPaused:
			return IconVMPaused
		case model.PowerSuspended:
			return IconVMSuspended
		default:
			return IconVMHalted
		}
	case model.TypeSR:
		if obj.Bool(model.AttrShared) {
			return IconSRShared
		}
		return IconSR
	case model.TypeConnection:
		if obj.Bool(model.AttrConnected) {
			return IconHost
		}
		return IconConnectionDisconnected
	}
	return IconGroup
}
