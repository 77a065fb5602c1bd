// See client.go for the connect-write-read-close cycle and resp-code parsing.
package enginecmd
