package model

import "testing"

func int64p(v int64) *int64 { return &v }

func TestChannelAdmits(t *testing.T) {
	lounge100k := Channel{MinSubscribers: 100000, MaxSubscribers: int64p(999999)}
	lounge1m := Channel{MinSubscribers: 1000000}
	free := Channel{}

	tests := []struct {
		name    string
		channel Channel
		count   int64
		want    bool
	}{
		{"below band", lounge100k, 99999, false},
		{"lower edge", lounge100k, 100000, true},
		{"inside band", lounge100k, 150000, true},
		{"upper edge", lounge100k, 999999, true},
		{"above band", lounge100k, 1000000, false},
		{"unbounded top admits large counts", lounge1m, 50000000, true},
		{"unbounded top rejects below min", lounge1m, 999999, false},
		{"open channel admits zero", free, 0, true},
		{"open channel admits anyone", free, 123456789, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.channel.Admits(tt.count); got != tt.want {
				t.Errorf("Admits(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestChannelIsOpen(t *testing.T) {
	if !(&Channel{}).IsOpen() {
		t.Error("zero-min unbounded channel should be open")
	}
	if (&Channel{MinSubscribers: 100, MaxSubscribers: int64p(999)}).IsOpen() {
		t.Error("banded lounge should not be open")
	}
}

func TestMaxSubscriberCount(t *testing.T) {
	tests := []struct {
		name     string
		accounts []Account
		want     int64
	}{
		{"no accounts", nil, 0},
		{"single", []Account{{SubscriberCount: 150000}}, 150000},
		{"best platform wins, not a sum", []Account{
			{Provider: ProviderYouTube, SubscriberCount: 150000},
			{Provider: ProviderTwitch, SubscriberCount: 900000},
			{Provider: ProviderTikTok, SubscriberCount: 5000},
		}, 900000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxSubscriberCount(tt.accounts); got != tt.want {
				t.Errorf("MaxSubscriberCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseProvider(t *testing.T) {
	for _, in := range []string{"youtube", "YOUTUBE", " Chzzk "} {
		if _, err := ParseProvider(in); err != nil {
			t.Errorf("ParseProvider(%q) error = %v", in, err)
		}
	}
	if _, err := ParseProvider("github"); err == nil {
		t.Error("ParseProvider(github) should fail")
	}
	if got := ProviderSoop.Slug(); got != "soop" {
		t.Errorf("Slug() = %q, want soop", got)
	}
}
