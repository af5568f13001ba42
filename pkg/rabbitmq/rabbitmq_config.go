package rabbitmq

import "group-mail/pkg/utilities"

type RabbimqConfigJson struct {
	Enabled          bool                           `json:"enabled"`
	Host             string                         `json:"host"`
	Port             uint16                         `json:"port"`
	User             string                         `json:"user"`
	Password         string                         `json:"password"`
	Exchanges        []RabbitmqExchangeConfigJson   `json:"exchanges"`
	Queues           []RabbitmqQueueConfigJson      `json:"queues"`
	PublishersConfig []RabbitmqPublishersConfigJson `json:"publishers"`
	ConsumersConfig  []RabbitmqConsumerConfigJson   `json:"consumers"`
}

type RabbitmqConfig struct {
	Enabled          bool
	Host             string
	Port             uint16
	User             string
	Password         string
	Exchanges        []RabbitmqExchangeConfig
	Queues           []RabbitmqQueueConfig
	PublishersConfig []RabbitmqPublishersConfig
	ConsumersConfig  []RabbitmqConsumerConfig
}

func (rcj RabbimqConfigJson) ConvertToDomain() RabbitmqConfig {
	return RabbitmqConfig{
		Enabled:  rcj.Enabled,
		Host:     utilities.Ternary(rcj.Host == "", "rabbitmq", rcj.Host),
		Port:     utilities.Ternary(rcj.Port == 0, uint16(5672), rcj.Port),
		User:     rcj.User,
		Password: rcj.Password,
		Exchanges: utilities.ConvertJsonArrayToDomain[
			RabbitmqExchangeConfigJson,
			RabbitmqExchangeConfig,
		](rcj.Exchanges),
		Queues: utilities.ConvertJsonArrayToDomain[
			RabbitmqQueueConfigJson,
			RabbitmqQueueConfig,
		](rcj.Queues),
		PublishersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqPublishersConfigJson,
			RabbitmqPublishersConfig,
		](rcj.PublishersConfig),
		ConsumersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqConsumerConfigJson,
			RabbitmqConsumerConfig,
		](rcj.ConsumersConfig),
	}
}

type RabbitmqExchangeType string

func (ret RabbitmqExchangeType) String() string {
	return string(ret)
}

const (
	ExchangeFanout RabbitmqExchangeType = "fanout"
	ExchangeDirect RabbitmqExchangeType = "direct"
	ExchangeTopic  RabbitmqExchangeType = "topic"
)

type RabbitmqExchangeConfigJson struct {
	ExchangeName string `json:"exchange_name"`
	ExchangeType string `json:"exchange_type"`
}

type RabbitmqExchangeConfig struct {
	ExchangeName string
	ExchangeType RabbitmqExchangeType
}

func (recj RabbitmqExchangeConfigJson) ConvertToDomain() RabbitmqExchangeConfig {
	return RabbitmqExchangeConfig{
		ExchangeName: recj.ExchangeName,
		ExchangeType: utilities.Ternary(
			recj.ExchangeType == "",
			ExchangeDirect,
			RabbitmqExchangeType(recj.ExchangeType),
		),
	}
}

type RabbitmqQueueConfigJson struct {
	QueueName       string `json:"queue_name"`
	ExchangeBinding string `json:"exchange_binding"`
	RoutingKey      string `json:"routing_key"`
	Durable         bool   `json:"durable"`
}

type RabbitmqQueueConfig struct {
	QueueName       string
	ExchangeBinding string
	RoutingKey      string
	Durable         bool
}

func (rqcj RabbitmqQueueConfigJson) ConvertToDomain() RabbitmqQueueConfig {
	return RabbitmqQueueConfig{
		QueueName:       rqcj.QueueName,
		ExchangeBinding: rqcj.ExchangeBinding,
		RoutingKey:      rqcj.RoutingKey,
		Durable:         rqcj.Durable,
	}
}

type RabbitmqPublishersConfigJson struct {
	PublisherAlias string `json:"publisher_alias"`
	Exchange       string `json:"exchange"`
	RoutingKey     string `json:"routing_key"`
}

type RabbitmqPublishersConfig struct {
	PublisherAlias PublisherAlias
	Exchange       string
	RoutingKey     string
}

func (rpcj RabbitmqPublishersConfigJson) ConvertToDomain() RabbitmqPublishersConfig {
	return RabbitmqPublishersConfig{
		PublisherAlias: PublisherAlias(rpcj.PublisherAlias),
		Exchange:       rpcj.Exchange,
		RoutingKey:     rpcj.RoutingKey,
	}
}

type RabbitmqConsumerConfigJson struct {
	ConsumerAlias string `json:"consumer_alias"`
	ConsumerTag   string `json:"consumer_tag"`
	QueueName     string `json:"queue_name"`
}

type RabbitmqConsumerConfig struct {
	ConsumerAlias ConsumerAlias
	ConsumerTag   string
	QueueName     string
}

func (rccj RabbitmqConsumerConfigJson) ConvertToDomain() RabbitmqConsumerConfig {
	return RabbitmqConsumerConfig{
		ConsumerAlias: ConsumerAlias(rccj.ConsumerAlias),
		QueueName:     rccj.QueueName,
		ConsumerTag:   rccj.ConsumerTag,
	}
}
