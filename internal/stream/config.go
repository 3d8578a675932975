package stream

type StreamConfig struct {
	RedisAddr    string
	Stream       string
	AnswerStream string
	Group        string
	ConsumerName string
}

func NewStreamConfig(redisAddr string, stream string, answerStream string, group string, consumerName string) *StreamConfig {
	return &StreamConfig{
		RedisAddr:    redisAddr,
		Stream:       stream,
		AnswerStream: answerStream,
		Group:        group,
		ConsumerName: consumerName,
	}
}
