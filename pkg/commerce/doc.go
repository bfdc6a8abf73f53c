// Package commerce implements the remote commerce API collaborator the
// synchronization store pulls from and confirms mutations against.
//
// The client speaks the storefront's notification REST surface:
//
//	GET   /notifications?limit=N        -> {"data": [Notification, ...]}
//	GET   /notifications/unread-count   -> {"data": {"count": N}}
//	PATCH /notifications/{id}/read
//	PATCH /notifications/read-all
//
// Requests carry the session credential as a bearer token. The client is a
// thin transport: it reports errors to its caller and leaves the
// log-and-swallow policy to the store.
//
//	var cfg commerce.Config
//	config.MustLoad(&cfg)
//
//	client, err := commerce.New(cfg, sessionToken)
package commerce
