package router

import "github.com/gin-gonic/gin"

// Module is a group of routes mounted on the engine root.
type Module interface {
	Register(r *gin.RouterGroup)
}

// Registry collects route modules and mounts them in order.
type Registry struct {
	engine  *gin.Engine
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{engine: engine}
}

func (r *Registry) Add(m Module) {
	r.modules = append(r.modules, m)
}

func (r *Registry) RegisterAll() {
	root := r.engine.Group("")
	for _, m := range r.modules {
		m.Register(root)
	}
}
