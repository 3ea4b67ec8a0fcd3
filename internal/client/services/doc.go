// Package services holds the client-side domain engine: the durable
// session store with its storage-key migrations, the entitlement gate
// with the route guard, per-install preferences, and the notification
// poller. Everything persists through the kvstore repository and talks
// to the backend only through the api.Client interface.
package services
