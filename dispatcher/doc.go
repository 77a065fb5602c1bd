// Package dispatcher routes bus requests to their handlers. See
// plugin_methods.go, audio_methods.go, and legacy.go for the three request
// families the command socket accepts, and dispatcher.go for the health
// socket and the shared JSON envelope handling.
package dispatcher
