// Package topup models driver requests to credit their wallet after paying the platform
// out of band. Approval credits the wallet exactly once.
package topup
