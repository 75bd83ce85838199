// Env packet describes all settings, common to whole application
package env

import "time"

const (
	// Log sink lines use wall clock time with second precision
	TimeFormat = "15:04:05"
	// JSON log file lines are ISO8601 (RFC3339 is a stricter variant)
	FileTimeFormat = time.RFC3339

	// Remote echo endpoint. Anything written there is echoed back.
	DefaultEchoHost = "tcpbin.com"
	DefaultEchoPort = 4242

	// Heartbeat interval and TCP drop detection time
	DefaultEchoInterval = time.Second
	DefaultDropTime     = 3 * time.Second

	// Log sink capacity and the number of lines a panel renders
	DefaultLogBufferSize = 256
	LogScrollLines       = 64

	// Public address is not expected to change often
	PublicIPUpdatePeriod = time.Minute

	// Receive limits used by the connection manager
	ReceiveMinLength = 1
	ReceiveMaxLength = 65536
)
