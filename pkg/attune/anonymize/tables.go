package anonymize

// roleTokens are the symbolic replacements assigned to personal names in
// encounter order within one text.
var roleTokens = []string{
	"The Mirror", "The Echo", "The Companion", "The Wanderer",
	"The Keeper", "The Listener", "The Traveler", "The Witness",
}

// knownNames is the curated first-name list checked when names are masked.
// Drawn from common feminine, masculine, and neutral given names; matching is
// whole-word and case-insensitive.
var knownNames = []string{
	// feminine
	"Michelle", "Sarah", "Emily", "Jessica", "Amanda", "Rachel", "Laura",
	"Sophie", "Hannah", "Olivia", "Emma", "Grace", "Maria", "Anna", "Claire",
	// masculine
	"Michael", "David", "James", "John", "Daniel", "Matthew", "Andrew",
	"Thomas", "Robert", "William", "Lucas", "Henry", "Samuel", "Peter",
	// neutral
	"Alex", "Jordan", "Taylor", "Casey", "Morgan", "Riley", "Jamie", "Sam",
}

// familyRoles is always applied: the relational tone survives while the
// literal term does not.
var familyRoles = map[string]string{
	"mother":      "the Lightkeeper",
	"mom":         "the Lightkeeper",
	"mum":         "the Lightkeeper",
	"father":      "the Anchor",
	"dad":         "the Anchor",
	"sister":      "the Kindred",
	"brother":     "the Kindred",
	"daughter":    "the Seedling",
	"son":         "the Seedling",
	"grandmother": "the Elder",
	"grandma":     "the Elder",
	"grandfather": "the Elder",
	"grandpa":     "the Elder",
	"wife":        "the Companion",
	"husband":     "the Companion",
	"kids":        "the little ones",
	"children":    "the little ones",
}

// medicalTerms maps diagnoses and treatment words to symbolic tokens, applied
// only when medical details are masked.
var medicalTerms = map[string]string{
	"depression": "the Depths",
	"depressed":  "the Depths",
	"anxiety":    "the Storm",
	"anxious":    "the Storm",
	"trauma":     "the Old Wound",
	"ptsd":       "the Echoes",
	"therapy":    "the Healing Room",
	"therapist":  "the Guide",
	"medication": "the Remedy",
	"insomnia":   "the Long Night",
	"panic":      "the Surge",
	"diagnosis":  "the Naming",
}

// locationTable generalizes place references to coarse region tokens. Keys
// are regex alternations, matched case-insensitively on word boundaries.
var locationTable = map[string]string{
	`new york|nyc|brooklyn|manhattan|boston|chicago`:          "a northern city",
	`los angeles|san francisco|seattle|portland|denver`:       "a western city",
	`austin|houston|dallas|atlanta|miami|new orleans`:         "a southern city",
	`london|paris|berlin|rome|madrid|amsterdam`:               "a european city",
	`tokyo|seoul|beijing|shanghai|singapore|mumbai`:           "an eastern city",
	`california|oregon|washington state|nevada`:               "the west coast",
	`texas|georgia|florida|louisiana`:                         "the south",
	`maine|vermont|massachusetts|new hampshire|new england`:   "the northeast",
}
