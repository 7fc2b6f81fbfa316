package service

import (
	"math"
	"time"

	"bikeshare/pkg/config"
)

// FeePolicy prices a rental: a base fee at checkout and, past the free
// period, a fixed fee per started block of extra minutes.
type FeePolicy struct {
	BaseFee      float64
	FreeMinutes  int64
	BlockMinutes int64
	BlockFee     float64
}

func NewFeePolicy(cfg *config.Config) FeePolicy {
	return FeePolicy{
		BaseFee:      cfg.RentalBaseFee,
		FreeMinutes:  int64(cfg.RentalFreeMinutes),
		BlockMinutes: int64(cfg.RentalExtraBlockMinutes),
		BlockFee:     cfg.RentalExtraBlockFee,
	}
}

// ElapsedMinutes counts whole minutes between start and end.
func ElapsedMinutes(start, end time.Time) int64 {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / time.Minute)
}

// ExtraFee bills every started block beyond the free period in full.
func (p FeePolicy) ExtraFee(minutes int64) float64 {
	if minutes <= p.FreeMinutes || p.BlockMinutes <= 0 {
		return 0
	}
	blocks := (minutes - p.FreeMinutes + p.BlockMinutes - 1) / p.BlockMinutes
	return roundCents(float64(blocks) * p.BlockFee)
}

func (p FeePolicy) Total(minutes int64) float64 {
	return roundCents(p.BaseFee + p.ExtraFee(minutes))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
