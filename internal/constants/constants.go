package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultItemLimit = 100
	MaxItemLimit     = 1000
)

const (
	DefaultReloadInterval = time.Minute
	DefaultDigestInterval = 15 * time.Minute
)
