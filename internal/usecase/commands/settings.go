package commands

import (
	"time"

	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/pkg/config"
)

type Settings struct {
	BatchVolume       inventory.Volume
	ShippingFee       int64
	DurableTimeout    time.Duration
	NotificationTopic string
}

func NewSettings(cfg config.Config) (Settings, error) {
	batch, err := cfg.Fulfillment.BatchVolume()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		BatchVolume:       inventory.VolumeFromML(batch),
		ShippingFee:       cfg.Fulfillment.ShippingFee,
		DurableTimeout:    cfg.Fulfillment.DurableTimeout,
		NotificationTopic: cfg.Kafka.Topic,
	}, nil
}
