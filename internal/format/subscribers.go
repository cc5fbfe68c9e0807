// Package format holds presentation helpers shared by the post and comment views.
package format

import (
	"fmt"
	"strconv"
)

// SubscriberCount renders a subscriber count the way the community UI shows it:
//
//	n >= 10,000      floor(n/10000) + "만"   (150000 -> "15만")
//	1,000 <= n < 10,000  one-decimal thousands + "천" (5500 -> "5.5천")
//	n < 1,000        the integer itself       (500 -> "500")
func SubscriberCount(n int64) string {
	switch {
	case n >= 10000:
		return strconv.FormatInt(n/10000, 10) + "만"
	case n >= 1000:
		return fmt.Sprintf("%.1f천", float64(n)/1000)
	default:
		return strconv.FormatInt(n, 10)
	}
}
