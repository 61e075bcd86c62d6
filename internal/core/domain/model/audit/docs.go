// Package audit holds the append-only records of administrative actions and security alerts.
package audit
