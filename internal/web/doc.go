// Package web is the optional HTTP surface of a scheduled mailmerge daemon.
// It exposes health probes, the live delivery dashboard and per-contact
// message previews. Nothing reachable over HTTP sends mail.
package web
