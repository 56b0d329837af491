// Package keyspace owns the naming of every key the service writes to the
// record store, and how a week bucket is read back out of a key.
//
//	record:{week}:{player}:{suffix}         roast JSON
//	record:{week}:{player}:{suffix}:votes   vote counters (hash: up, down)
//	index:subject:{player}:{week}           set of roast ids
//	index:client:{client}:{player}          list of roast ids, newest first
//	index:global:{week}                     list of roast ids, newest first
//	index:top:{player}:{week}               cached top view (roast ids)
//	guard:vote:{client}:{roastId}           one-vote marker
//	cache:...                               upstream catalogue cache
//
// Identifiers embedded in keys must not contain ':' (see ValidIdentifier).
package keyspace

import (
	"fmt"
	"strings"
	"unicode"

	"roast-board/bucket"
)

const (
	RecordPrefix       = "record:"
	SubjectIndexPrefix = "index:subject:"
	ClientIndexPrefix  = "index:client:"
	GlobalIndexPrefix  = "index:global:"
	TopViewPrefix      = "index:top:"
	VoteGuardPrefix    = "guard:vote:"
	CachePrefix        = "cache:"

	votesSuffix = ":votes"
)

// ValidIdentifier reports whether s can be embedded in a key segment.
func ValidIdentifier(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		if r == ':' || r == '*' || r == '?' || r == '[' || r == ']' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// RoastID composes a roast id. Only uniqueness is guaranteed; the parts are
// recoverable with ParseRoastID so the record key can be derived from the id.
func RoastID(playerID, week, suffix string) string {
	return playerID + "-" + week + "-" + suffix
}

// ParseRoastID splits an id built by RoastID. The suffix never contains '-'
// and the week is always "YYYY-WW", so parsing from the right is unambiguous
// even when the player id contains dashes.
func ParseRoastID(id string) (playerID, week, suffix string, ok bool) {
	parts := strings.Split(id, "-")
	n := len(parts)
	if n < 4 {
		return "", "", "", false
	}
	suffix = parts[n-1]
	week = parts[n-3] + "-" + parts[n-2]
	playerID = strings.Join(parts[:n-3], "-")
	if suffix == "" || !ValidIdentifier(playerID) || !ValidIdentifier(suffix) {
		return "", "", "", false
	}
	if _, _, valid := bucket.Parse(week); !valid {
		return "", "", "", false
	}
	return playerID, week, suffix, true
}

func Record(week, playerID, suffix string) string {
	return fmt.Sprintf("%s%s:%s:%s", RecordPrefix, week, playerID, suffix)
}

// RecordForID returns the record key of a roast id.
func RecordForID(id string) (string, bool) {
	playerID, week, suffix, ok := ParseRoastID(id)
	if !ok {
		return "", false
	}
	return Record(week, playerID, suffix), true
}

func Votes(recordKey string) string {
	return recordKey + votesSuffix
}

func SubjectIndex(playerID, week string) string {
	return SubjectIndexPrefix + playerID + ":" + week
}

func ClientIndex(clientID, playerID string) string {
	return ClientIndexPrefix + clientID + ":" + playerID
}

func GlobalIndex(week string) string {
	return GlobalIndexPrefix + week
}

func TopView(playerID, week string) string {
	return TopViewPrefix + playerID + ":" + week
}

func VoteGuard(clientID, roastID string) string {
	return VoteGuardPrefix + clientID + ":" + roastID
}

// Cache builds a key for upstream catalogue data, e.g. Cache("teams", "nfl").
func Cache(parts ...string) string {
	return CachePrefix + strings.Join(parts, ":")
}

// Namespace describes a family of bucket-scoped keys.
type Namespace struct {
	Pattern  string
	BucketOf func(key string) (string, bool)
}

// Bucketed lists every namespace whose keys embed a week bucket. Client
// indexes, vote guards and cache entries carry no bucket and rely on TTL.
var Bucketed = []Namespace{
	{Pattern: RecordPrefix + "*", BucketOf: recordBucket},
	{Pattern: SubjectIndexPrefix + "*", BucketOf: lastSegment},
	{Pattern: GlobalIndexPrefix + "*", BucketOf: lastSegment},
	{Pattern: TopViewPrefix + "*", BucketOf: lastSegment},
}

func recordBucket(key string) (string, bool) {
	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return "", false
	}
	return checked(parts[1])
}

func lastSegment(key string) (string, bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", false
	}
	return checked(key[idx+1:])
}

func checked(week string) (string, bool) {
	if _, _, ok := bucket.Parse(week); !ok {
		return "", false
	}
	return week, true
}
