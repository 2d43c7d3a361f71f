package utils

var aliasAdj = []string{
	"Amber",
	"Brave",
	"Calm",
	"Clever",
	"Cosy",
	"Eager",
	"Gentle",
	"Golden",
	"Happy",
	"Lucky",
	"Mellow",
	"Nimble",
	"Quiet",
	"Rapid",
	"Silver",
	"Steady",
	"Sunny",
	"Swift",
	"Tidy",
	"Witty",
}

var aliasThing = []string{
	"Badger",
	"Beacon",
	"Comet",
	"Falcon",
	"Harbor",
	"Heron",
	"Lantern",
	"Maple",
	"Otter",
	"Parcel",
	"Pigeon",
	"Raven",
	"Satchel",
	"Sparrow",
	"Tortoise",
	"Walrus",
}

// GenAlias picks a random two word station name like "Swift Heron".
func GenAlias() string {
	return RandChoice(aliasAdj) + " " + RandChoice(aliasThing)
}
