// Package cli implements the mailmerge command line on cobra.
//
//	mailmerge send (--now | --at "YYYY-MM-DD HH:MM" | --daily HH:MM | --cron EXPR)
//	               [--dry-run] [--resend] [--limit N] [--out-dir DIR] [--http-addr ADDR]
//	mailmerge report
//
// Flags override the configuration loaded by package config.
package cli
