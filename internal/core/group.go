package core

import "time"

// NoDateKey is the bucket for records without a usable date. Grouping
// never drops records.
const NoDateKey = "No Date"

// Bucket is one group produced by GroupBy.
type Bucket[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy partitions items into buckets keyed by key. Buckets appear in
// the order their key is first encountered and items keep input order
// inside each bucket, so a date-sorted input yields a date-sorted
// report. Single pass.
func GroupBy[K comparable, T any](items []T, key func(T) K) []Bucket[K, T] {
	var buckets []Bucket[K, T]
	index := make(map[K]int, len(items))
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket[K, T]{Key: k})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	return buckets
}

// DayKey formats t as the calendar-day grouping key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DayOrFallback substitutes NoDateKey for an empty day key.
func DayOrFallback(day string) string {
	if day == "" {
		return NoDateKey
	}
	return day
}
