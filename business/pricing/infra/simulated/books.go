package simulated

// Deterministic market data used when no live source is configured.
// Two books are kept on purpose: the scan book is keyed by pair and holds
// cross-venue quotes for the same market, while the venue book is keyed by
// venue and lists everything that venue trades, for triangular search.

type bookEntry struct {
	bid, ask string
	volume   string
}

type pairKey struct {
	base, quote string
}

var scanBook = map[pairKey]map[string]bookEntry{
	{"ETH", "USDC"}: {
		"binance":   {"2541.20", "2541.50", "125000"},
		"coinbase":  {"2543.80", "2544.10", "45000"},
		"kraken":    {"2542.50", "2543.00", "35000"},
		"kucoin":    {"2540.90", "2541.40", "28000"},
		"okx":       {"2541.00", "2541.60", "52000"},
		"uniswap":   {"2542.10", "2542.80", "85000"},
		"sushiswap": {"2540.50", "2541.30", "22000"},
	},
	{"BTC", "USDC"}: {
		"binance":  {"67850.00", "67865.00", "4500"},
		"coinbase": {"67920.00", "67950.00", "2100"},
		"kraken":   {"67880.00", "67910.00", "1800"},
		"kucoin":   {"67840.00", "67870.00", "1200"},
		"okx":      {"67855.00", "67880.00", "3200"},
		"uniswap":  {"67870.00", "67920.00", "950"},
	},
	{"ETH", "BTC"}: {
		"binance":  {"0.03745", "0.03748", "8500"},
		"coinbase": {"0.03752", "0.03756", "3200"},
		"kraken":   {"0.03748", "0.03752", "2100"},
		"kucoin":   {"0.03744", "0.03749", "1800"},
		"okx":      {"0.03746", "0.03750", "4100"},
	},
	{"USDC", "USDT"}: {
		"binance":  {"0.9998", "1.0002", "500000"},
		"coinbase": {"0.9997", "1.0003", "120000"},
		"curve":    {"0.99995", "1.00005", "2500000"},
	},
}

type venuePair struct {
	base, quote string
	bid, ask    string
	fee         string
}

var venueBook = map[string][]venuePair{
	"binance": {
		{"ETH", "USDT", "2541.20", "2541.50", "0.001"},
		{"ETH", "BTC", "0.03745", "0.03748", "0.001"},
		{"ETH", "USDC", "2540.80", "2541.20", "0.001"},
		{"BTC", "USDT", "67850.00", "67865.00", "0.001"},
		{"BTC", "USDC", "67840.00", "67860.00", "0.001"},
		{"USDC", "USDT", "0.9998", "1.0002", "0.001"},
		{"BNB", "USDT", "580.50", "580.80", "0.001"},
		{"BNB", "ETH", "0.2285", "0.2288", "0.001"},
		{"BNB", "BTC", "0.00855", "0.00857", "0.001"},
	},
	"coinbase": {
		{"ETH", "USD", "2543.80", "2544.10", "0.006"},
		{"ETH", "BTC", "0.03752", "0.03756", "0.006"},
		{"BTC", "USD", "67920.00", "67950.00", "0.006"},
	},
}
