package utils

import "time"

// Service fee tiers. The first bracket covers everything up to BracketKM;
// each additional started bracket adds FeePerBracket.
const (
	BaseFee       = 30.0
	BracketKM     = 3.0
	FeePerBracket = 30.0
)

// RoadDistanceMultiplier scales straight-line distance into a road
// distance estimate when no routing provider is reachable.
const RoadDistanceMultiplier = 1.3

const (
	// OfferTimeout is how long a directly selected rider has to accept
	// before the request reverts to the open pool.
	OfferTimeout = 10 * time.Minute

	// FreshnessWindow bounds how old a rider location may be to count
	// as online for discovery.
	FreshnessWindow = 5 * time.Minute

	// Discovery search radii in kilometres. Callers may pick any radius
	// inside [MinSearchRadiusKM, MaxSearchRadiusKM]; out-of-range values
	// clamp to the nearest bound.
	DefaultSearchRadiusKM = 20.0
	NearbyRadiusKM        = 5.0
	MinSearchRadiusKM     = 1.0
	MaxSearchRadiusKM     = 100.0

	// DefaultDiscoveryLimit and MaxDiscoveryLimit bound how many
	// candidates a single discovery call returns.
	DefaultDiscoveryLimit = 50
	MaxDiscoveryLimit     = 200

	// CoalescingWindow is how long a location document keeps absorbing
	// in-place updates before a new history row is written.
	CoalescingWindow = time.Hour

	// LocationRetention is how far back location history is kept.
	LocationRetention = 30 * 24 * time.Hour
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxMessageLength = 2000
	MaxUploadSizeMB  = 10
)

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionRiders        = "riders"
	CollectionRequests      = "requests"
	CollectionLocations     = "locations"
	CollectionConversations = "conversations"
	CollectionMessages      = "messages"
	CollectionReceipts      = "message_receipts"
	CollectionConnections   = "connections"
	CollectionTyping        = "typing_status"
	CollectionNotifications = "notifications"
)
