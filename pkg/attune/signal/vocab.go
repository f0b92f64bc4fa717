package signal

// BaseSignals returns the eight seed dimensions. Vocabulary is curated, not
// learned; intensities sit in [0.6, 0.9] so a single keyword match already
// clears the reporting floor.
func BaseSignals() []Signal {
	return []Signal{
		{
			Name:          "love",
			Keywords:      []string{"love", "beloved", "adore", "cherish", "devotion", "heart", "affection", "tenderness"},
			Metaphors:     []string{"flame", "light", "gravity", "home", "harbor"},
			BaseIntensity: 0.9,
			Origin:        OriginBase,
		},
		{
			Name:          "intimacy",
			Keywords:      []string{"close", "closeness", "intimate", "touch", "embrace", "whisper", "skin", "warmth"},
			Metaphors:     []string{"threshold", "veil", "inner room", "candlelight"},
			BaseIntensity: 0.85,
			Origin:        OriginBase,
		},
		{
			Name:          "vulnerability",
			Keywords:      []string{"vulnerable", "afraid", "fragile", "exposed", "nervous", "scared", "uncertain", "raw"},
			Metaphors:     []string{"open wound", "thin ice", "bare branches", "glass"},
			BaseIntensity: 0.8,
			Origin:        OriginBase,
		},
		{
			Name:          "transformation",
			Keywords:      []string{"change", "becoming", "transform", "growth", "evolve", "shift", "renewal", "emerge"},
			Metaphors:     []string{"chrysalis", "molting", "tide", "phoenix", "threshold"},
			BaseIntensity: 0.75,
			Origin:        OriginBase,
		},
		{
			Name:          "admiration",
			Keywords:      []string{"admire", "respect", "brilliant", "amazing", "impressive", "remarkable", "extraordinary"},
			Metaphors:     []string{"summit", "north star", "lighthouse"},
			BaseIntensity: 0.7,
			Origin:        OriginBase,
		},
		{
			Name:          "joy",
			Keywords:      []string{"joy", "happy", "delight", "wonderful", "laughter", "inspired", "beauty", "celebrate", "alive"},
			Metaphors:     []string{"sunlight", "sparkle", "dancing", "overflowing"},
			BaseIntensity: 0.7,
			Origin:        OriginBase,
		},
		{
			Name:          "sensuality",
			Keywords:      []string{"sensual", "desire", "caress", "breath", "taste", "scent", "velvet", "silk"},
			Metaphors:     []string{"slow fire", "honey", "low tide", "ember"},
			BaseIntensity: 0.85,
			Origin:        OriginBase,
		},
		{
			Name:          "nature",
			Keywords:      []string{"nature", "forest", "ocean", "mountain", "river", "sunset", "sunrise", "garden", "rain", "stars"},
			Metaphors:     []string{"roots", "canopy", "current", "horizon"},
			BaseIntensity: 0.65,
			Origin:        OriginBase,
		},
	}
}

// PreDiscoveredSignals returns the second fixed tier: dimensions surfaced by
// earlier corpus runs and frozen into the shipped vocabulary.
func PreDiscoveredSignals() []Signal {
	return []Signal{
		{
			Name:          "nostalgia",
			Keywords:      []string{"remember", "memories", "childhood", "past", "used to", "back then", "miss those"},
			Metaphors:     []string{"sepia", "old photograph", "echo", "attic"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "melancholy",
			Keywords:      []string{"sad", "sorrow", "grief", "heavy", "weary", "mourning", "blue"},
			Metaphors:     []string{"grey sky", "long rain", "fading light"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "transcendence",
			Keywords:      []string{"transcendent", "transcendence", "beyond", "infinite", "sacred", "divine", "sublime", "awe"},
			Metaphors:     []string{"open sky", "vast ocean", "threshold of light"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "longing",
			Keywords:      []string{"longing", "yearning", "ache", "wish", "distant", "someday", "reach"},
			Metaphors:     []string{"far shore", "empty chair", "unsent letter"},
			BaseIntensity: 0.75,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "despair",
			Keywords:      []string{"hopeless", "despair", "pointless", "exhausted", "drowning", "broken", "lost"},
			Metaphors:     []string{"bottomless", "black water", "dead end"},
			BaseIntensity: 0.75,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "serenity",
			Keywords:      []string{"calm", "peace", "peaceful", "still", "quiet", "gentle", "ease", "settled"},
			Metaphors:     []string{"still lake", "morning mist", "slow river"},
			BaseIntensity: 0.65,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "rebellion",
			Keywords:      []string{"refuse", "fight", "resist", "defy", "rules", "break free", "against"},
			Metaphors:     []string{"wildfire", "storm", "unbroken horse"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "wonder",
			Keywords:      []string{"wonder", "curious", "marvel", "mystery", "astonished", "fascinated", "magic"},
			Metaphors:     []string{"night sky", "open door", "first snow"},
			BaseIntensity: 0.65,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "resilience",
			Keywords:      []string{"endure", "survive", "strong", "rebuild", "persist", "keep going", "recover"},
			Metaphors:     []string{"deep roots", "bent reed", "weathered stone"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
		{
			Name:          "solitude",
			Keywords:      []string{"alone", "lonely", "solitude", "isolated", "myself", "empty house", "silence"},
			Metaphors:     []string{"single lamp", "island", "winter field"},
			BaseIntensity: 0.7,
			Origin:        OriginPreDiscovered,
		},
	}
}
