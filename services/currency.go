package services

import "rentspace/constants"

// USDToSPY converts a USD amount to SPY, truncating toward zero.
func USDToSPY(usd float64) int64 {
	return int64(usd * constants.SPYPerUSD)
}

// SPYToUSD converts SPY to USD for display only.
func SPYToUSD(spy int64) float64 {
	return float64(spy) / constants.SPYPerUSD
}
