// Package target registers the importable link targets for one build
// configuration.
package target

import (
	"fmt"

	"github.com/carton-build/carton/internal/artifact"
)

// Kind distinguishes the registered link target variants.
type Kind string

const (
	KindShared Kind = "shared"
	KindStatic Kind = "static"
	KindAlias  Kind = "alias"
)

// Target is one importable link target: an artifact location plus the single
// include-directory requirement consumers inherit from it.
type Target struct {
	Name       string
	Kind       Kind
	Location   string
	IncludeDir string
}

// AliasConflictError reports an attempt to re-resolve the alias target with a
// different shared/static selection after it was already fixed. Flipping the
// switch mid-build would silently mix shared and static outputs, so the
// second resolution fails instead.
type AliasConflictError struct {
	Name      string
	Resolved  Kind
	Requested Kind
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf(
		"alias target %s is already resolved to %s and cannot be re-resolved to %s within one configuration",
		e.Name, e.Resolved, e.Requested,
	)
}

// Registry holds the link targets registered for one build configuration.
// The alias resolution is fixed on first use and immutable for the registry's
// lifetime.
type Registry struct {
	name      string
	shared    *Target
	static    *Target
	alias     *Target
	aliasKind Kind
}

// NewRegistry creates a registry for the library with the given public name.
func NewRegistry(name string) *Registry {
	return &Registry{name: name}
}

// RegisterShared registers the shared library target from a finalized
// artifact set.
func (r *Registry) RegisterShared(set *artifact.Set) Target {
	t := Target{
		Name:       r.name + "::shared",
		Kind:       KindShared,
		Location:   set.FinalShared,
		IncludeDir: set.IncludeDir,
	}
	r.shared = &t
	return t
}

// RegisterStatic registers the static library target from a finalized
// artifact set.
func (r *Registry) RegisterStatic(set *artifact.Set) Target {
	t := Target{
		Name:       r.name + "::static",
		Kind:       KindStatic,
		Location:   set.FinalStatic,
		IncludeDir: set.IncludeDir,
	}
	r.static = &t
	return t
}

// ResolveAlias resolves the unqualified alias target to the shared or static
// variant. The first call fixes the resolution; repeating it with the same
// selection returns the identical target, while a different selection is a
// conflict.
func (r *Registry) ResolveAlias(buildShared bool) (Target, error) {
	want := KindStatic
	backing := r.static
	if buildShared {
		want = KindShared
		backing = r.shared
	}

	if r.alias != nil {
		if r.aliasKind != want {
			return Target{}, &AliasConflictError{
				Name:      r.name,
				Resolved:  r.aliasKind,
				Requested: want,
			}
		}
		return *r.alias, nil
	}

	if backing == nil {
		return Target{}, fmt.Errorf("cannot resolve alias %s: no %s target registered", r.name, want)
	}

	t := Target{
		Name:       r.name,
		Kind:       KindAlias,
		Location:   backing.Location,
		IncludeDir: backing.IncludeDir,
	}
	r.alias = &t
	r.aliasKind = want
	return t, nil
}

// Shared returns the registered shared target, or nil.
func (r *Registry) Shared() *Target { return r.shared }

// Static returns the registered static target, or nil.
func (r *Registry) Static() *Target { return r.static }

// AliasKind reports the variant the alias resolved to, or the empty Kind
// when the alias has not been resolved yet.
func (r *Registry) AliasKind() Kind { return r.aliasKind }
