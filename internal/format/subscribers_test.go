package format

import "testing"

func TestSubscriberCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{999, "999"},
		{1000, "1.0천"},
		{5500, "5.5천"},
		{9999, "10.0천"},
		{10000, "1만"},
		{150000, "15만"},
		{1234567, "123만"},
	}

	for _, tt := range tests {
		if got := SubscriberCount(tt.in); got != tt.want {
			t.Errorf("SubscriberCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
