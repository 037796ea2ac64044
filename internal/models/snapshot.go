package models

// CurrentVersion is stamped on every accepted write. Version 1 documents carry
// no net-worth series.
const CurrentVersion = 2

// Snapshot is the whole persisted record for one address.
type Snapshot struct {
	Version     int              `json:"version"`
	CapturedAt  int64            `json:"capturedAt"`
	Stake       StakeSeries      `json:"stake"`
	Withdrawals WithdrawalSeries `json:"wd"`
	NetWorth    NetWorthSeries   `json:"nw"`
}

// StakeSeries is aligned on Data.
type StakeSeries struct {
	Labels []string `json:"labels"`
	Data   []Number `json:"data"`
	Moves  []Number `json:"moves"`
	Types  []string `json:"types"`
}

// WithdrawalSeries is aligned on Values.
type WithdrawalSeries struct {
	Labels []string `json:"labels"`
	Values []Number `json:"values"`
	Times  []Number `json:"times"`
}

// NetWorthSeries is aligned on Times.
type NetWorthSeries struct {
	Times []Number `json:"times"`
	USD   []Number `json:"usd"`
	INJ   []Number `json:"inj"`
}

func (s *StakeSeries) Len() int      { return len(s.Data) }
func (s *WithdrawalSeries) Len() int { return len(s.Values) }
func (s *NetWorthSeries) Len() int   { return len(s.Times) }

// Normalize replaces nil channels with empty ones so a decoded document
// encodes the same way as a freshly sanitized one.
func (s *Snapshot) Normalize() {
	s.Stake.Labels = nonNil(s.Stake.Labels)
	s.Stake.Data = nonNil(s.Stake.Data)
	s.Stake.Moves = nonNil(s.Stake.Moves)
	s.Stake.Types = nonNil(s.Stake.Types)
	s.Withdrawals.Labels = nonNil(s.Withdrawals.Labels)
	s.Withdrawals.Values = nonNil(s.Withdrawals.Values)
	s.Withdrawals.Times = nonNil(s.Withdrawals.Times)
	s.NetWorth.Times = nonNil(s.NetWorth.Times)
	s.NetWorth.USD = nonNil(s.NetWorth.USD)
	s.NetWorth.INJ = nonNil(s.NetWorth.INJ)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
