package worker

const (
	defaultNumWorkers = 16
	defaultQueueSize  = 256
)

type Config struct {
	NumWorkers int
	QueueSize  int
}
