// Package sanitizer cleans composed HTML before it is shown in a browser,
// using [github.com/microcosm-cc/bluemonday] policies.
package sanitizer
