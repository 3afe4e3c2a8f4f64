package ws

import "go.uber.org/zap"

// Router fans a named event out to the live connections of a recipient
// list. Delivery is at-most-once and best-effort: no acknowledgement, no
// retry, and resolving zero connections is a no-op — offline recipients
// catch up from persisted state.
type Router struct {
	registry *Registry
	log      *zap.SugaredLogger
}

func NewRouter(registry *Registry, log *zap.SugaredLogger) *Router {
	return &Router{registry: registry, log: log}
}

func (r *Router) Route(event string, users []string, data any) {
	clients := r.registry.Resolve(users)
	if len(clients) == 0 {
		return
	}
	env := Envelope{Event: event, Data: data}
	for _, c := range clients {
		if !c.Enqueue(env) {
			r.log.Warnw("event dropped, client buffer full", "event", event, "user", c.UserID())
		}
	}
}
