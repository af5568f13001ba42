package rest

import "github.com/gin-gonic/gin"

type HttpMethod int

const (
	GET HttpMethod = iota
	POST
	PUT
	PATCH
	DELETE
)

func (m HttpMethod) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case PATCH:
		return "PATCH"
	case DELETE:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

type Route struct {
	Method      HttpMethod
	Path        string
	HandlerFunc gin.HandlerFunc
	Group       string
}

func NewRoute(method HttpMethod, group, path string, handler gin.HandlerFunc) Route {
	return Route{
		Method:      method,
		Path:        path,
		Group:       group,
		HandlerFunc: handler,
	}
}

// Register mounts routes and middlewares on router, creating one group per prefix.
func Register(router *gin.Engine, middlewares []Middleware, routes []Route) {
	groups := map[string]*gin.RouterGroup{}
	group := func(name string) *gin.RouterGroup {
		if g, ok := groups[name]; ok {
			return g
		}
		g := router.Group("/" + name)
		groups[name] = g
		return g
	}

	// groups copy engine handlers when created, so global middleware goes first
	for _, m := range middlewares {
		if m.Group == "*" || m.Group == "" {
			router.Use(m.Handler)
		}
	}
	for _, m := range middlewares {
		if m.Group != "*" && m.Group != "" {
			group(m.Group).Use(m.Handler)
		}
	}

	for _, r := range routes {
		g := group(r.Group)
		switch r.Method {
		case GET:
			g.GET(r.Path, r.HandlerFunc)
		case POST:
			g.POST(r.Path, r.HandlerFunc)
		case PUT:
			g.PUT(r.Path, r.HandlerFunc)
		case PATCH:
			g.PATCH(r.Path, r.HandlerFunc)
		case DELETE:
			g.DELETE(r.Path, r.HandlerFunc)
		}
	}
}
