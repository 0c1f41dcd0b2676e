package views

import (
	"net/http"
	"path"
)

// Mux is the subset of http.ServeMux a view needs to mount itself. Any router
// exposing Handle(pattern, handler) satisfies it.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the view on mux at basePath joined with the view's
// route path.
func (v *FormView) RegisterRoutes(mux Mux, basePath string) {
	mux.Handle(v.MountPath(basePath), v)
}

// MountPath reports where RegisterRoutes would mount the view.
func (v *FormView) MountPath(basePath string) string {
	return mountPath(basePath, v.opts.RoutePath)
}

func mountPath(basePath, routePath string) string {
	joined := path.Join("/", basePath, routePath)
	if joined == "" {
		return "/"
	}
	return joined
}
