// Package async provides a minimal Future abstraction for running independent
// remote calls concurrently and joining on their results.
//
// The synchronization store uses it during reconciliation to fetch the
// notification list and the unread counter in parallel:
//
//	list := async.Run(ctx, func(ctx context.Context) ([]Notification, error) { ... })
//	count := async.Run(ctx, func(ctx context.Context) (int, error) { ... })
//
//	items, listErr := list.Await()
//	total, countErr := count.Await()
package async
