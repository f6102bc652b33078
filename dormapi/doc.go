// Package dormapi provides typed wrappers over the dorm backend's report
// and check-in endpoints. It rides on an authenticated dispatcher and adds
// nothing of its own: credentials, interception, and error taxonomy all
// belong to the dispatcher behind the [Dispatcher] interface.
package dormapi
