package snapshot

import (
	"snapshotd/internal/models"
	"snapshotd/internal/structures"
	"time"
)

const (
	DefaultMaxPoints = 2400
	DefaultStakeType = "Stake update"
)

var (
	StakeSpec = SeriesSpec{
		Name:          "stake",
		Authoritative: "data",
		Channels: []ChannelSpec{
			{Name: "labels", Kind: TextChannel},
			{Name: "data", Kind: NumericChannel},
			{Name: "moves", Kind: NumericChannel},
			{Name: "types", Kind: TextChannel, TextDefault: DefaultStakeType},
		},
	}

	WithdrawalSpec = SeriesSpec{
		Name:          "wd",
		Authoritative: "values",
		Channels: []ChannelSpec{
			{Name: "labels", Kind: TextChannel},
			{Name: "values", Kind: NumericChannel},
			{Name: "times", Kind: NumericChannel},
		},
	}

	NetWorthSpec = SeriesSpec{
		Name:          "nw",
		Authoritative: "times",
		Channels: []ChannelSpec{
			{Name: "times", Kind: NumericChannel},
			{Name: "usd", Kind: NumericChannel},
			{Name: "inj", Kind: NumericChannel},
		},
	}
)

// Sanitizer rebuilds an untrusted payload into a bounded, aligned Snapshot.
type Sanitizer struct {
	maxPoints int
	now       func() time.Time
}

func NewSanitizer(conf *structures.Config) *Sanitizer {
	maxPoints := conf.Snapshot.MaxPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Sanitizer{maxPoints: maxPoints, now: time.Now}
}

func (s *Sanitizer) MaxPoints() int {
	return s.maxPoints
}

// Sanitize never fails. Client-supplied version and capturedAt are ignored.
func (s *Sanitizer) Sanitize(payload map[string]any) *models.Snapshot {
	stake := AlignSeries(payload["stake"], StakeSpec, s.maxPoints)
	wd := AlignSeries(lookup(payload, "wd", "withdrawals"), WithdrawalSpec, s.maxPoints)
	nw := AlignSeries(lookup(payload, "nw", "netWorth"), NetWorthSpec, s.maxPoints)

	return &models.Snapshot{
		Version:    models.CurrentVersion,
		CapturedAt: s.now().UnixMilli(),
		Stake: models.StakeSeries{
			Labels: stake.Texts["labels"],
			Data:   stake.Numbers["data"],
			Moves:  stake.Numbers["moves"],
			Types:  stake.Texts["types"],
		},
		Withdrawals: models.WithdrawalSeries{
			Labels: wd.Texts["labels"],
			Values: wd.Numbers["values"],
			Times:  wd.Numbers["times"],
		},
		NetWorth: models.NetWorthSeries{
			Times: nw.Numbers["times"],
			USD:   nw.Numbers["usd"],
			INJ:   nw.Numbers["inj"],
		},
	}
}

// lookup returns the first key present in payload.
func lookup(payload map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			return v
		}
	}
	return nil
}
