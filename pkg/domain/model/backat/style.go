package backat

// Tier classifies a duration for presentation
type Tier string

const (
	TierInstant  Tier = "instant"
	TierShort    Tier = "short"
	TierMedium   Tier = "medium"
	TierLong     Tier = "long"
	TierExtended Tier = "extended"
	TierMultiDay Tier = "multi_day"
)

// Style is the icon and colour of a duration tier
type Style struct {
	Tier  Tier   `json:"tier"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type styleBound struct {
	maxMinutes float64
	style      Style
}

var styleTable = []styleBound{
	{30, Style{Tier: TierInstant, Icon: "zap", Color: "#22c55e"}},
	{120, Style{Tier: TierShort, Icon: "coffee", Color: "#4a5d4a"}},
	{60 * 6, Style{Tier: TierMedium, Icon: "clock", Color: "#c9a962"}},
	{60 * 24, Style{Tier: TierLong, Icon: "moon", Color: "#8b5cf6"}},
	{60 * 24 * 3, Style{Tier: TierExtended, Icon: "sun", Color: "#f59e0b"}},
}

var multiDayStyle = Style{Tier: TierMultiDay, Icon: "sparkles", Color: "#a85d5d"}

// StyleFor returns the style tier for a duration in minutes. Boundaries are inclusive.
func StyleFor(minutes float64) Style {
	for _, b := range styleTable {
		if minutes <= b.maxMinutes {
			return b.style
		}
	}
	return multiDayStyle
}
