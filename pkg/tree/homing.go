package tree

import "github.com/vanderheijden86/poolnav/pkg/model"

// Home decides which host a VM is displayed under. The first rule that
// applies wins:
//
//  1. a running or paused VM goes under its resident host;
//  2. a VM whose resolvable disks all sit on storage local to one and the
//     same host goes under that host;
//  3. a VM with an affinity host goes under it;
//  4. otherwise the VM has no home and sits at pool level.
//
// References that do not resolve count as absent. Snapshots, templates and
// control domains are never homed.
func (r *Relations) Home(vm model.Object) (string, bool) {
	if !vm.IsRealVM() {
		return "", false
	}
	if res, ok := r.homes[vm.Key.Ref]; ok {
		return res.host, res.ok
	}
	host, ok := r.home(vm)
	r.homes[vm.Key.Ref] = homeResult{host: host, ok: ok}
	return host, ok
}

func (r *Relations) home(vm model.Object) (string, bool) {
	if vm.PowerState().IsLive() {
		if host, ok := r.resolveRef(vm, model.AttrResidentOn, model.TypeHost); ok {
			return host.Key.Ref, true
		}
	}
	if host, ok := r.storageHost(vm); ok {
		return host, true
	}
	if host, ok := r.resolveRef(vm, model.AttrAffinity, model.TypeHost); ok {
		return host.Key.Ref, true
	}
	return "", false
}

// storageHost returns the host when every resolvable disk of the VM is on an
// SR local to that host. Disks whose VDI or SR does not resolve are ignored;
// at least one disk must remain.
func (r *Relations) storageHost(vm model.Object) (string, bool) {
	home := ""
	for _, ref := range vm.Refs(model.AttrVDIs) {
		vdi, ok := r.cache.Resolve(model.ObjectKey{Type: model.TypeVDI, Ref: ref})
		if !ok {
			continue
		}
		sr, ok := r.resolveRef(vdi, model.AttrSR, model.TypeSR)
		if !ok {
			continue
		}
		host, local := r.LocalHost(sr)
		if !local {
			return "", false
		}
		if home != "" && home != host {
			return "", false
		}
		home = host
	}
	return home, home != ""
}
