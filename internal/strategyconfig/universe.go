package strategyconfig

import (
	"fmt"
	"strings"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Admit checks a ticker against the universe filter.
// Missing snapshots skip the checks that need them.
// 반환값: (통과 여부, 제외 사유)
func (u UniverseFilter) Admit(price *contracts.PriceSnapshot, f *contracts.FundamentalsSnapshot) (bool, string) {
	if price != nil && u.MaxPrice > 0 && price.Price > u.MaxPrice {
		return false, fmt.Sprintf("price %.2f > max %.2f", price.Price, u.MaxPrice)
	}

	if f == nil {
		return true, ""
	}

	if u.MaxMarketCap > 0 && f.MarketCap > u.MaxMarketCap {
		return false, fmt.Sprintf("market cap %.0f > max %.0f", f.MarketCap, u.MaxMarketCap)
	}

	if u.ExcludeETFs && f.IsETF {
		return false, "etf excluded"
	}

	if len(u.AllowedCountries) > 0 && f.Country != "" && !containsFold(u.AllowedCountries, f.Country) {
		return false, "country not allowed: " + f.Country
	}

	if len(u.AllowedExchanges) > 0 && f.Exchange != "" && !matchesExchange(u.AllowedExchanges, f.Exchange) {
		return false, "exchange not allowed: " + f.Exchange
	}

	return true, ""
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

// matchesExchange treats an allowed entry as a family prefix ("OTC" admits "OTCQB")
func matchesExchange(allowed []string, exchange string) bool {
	ex := strings.ToUpper(strings.TrimSpace(exchange))
	for _, a := range allowed {
		if strings.HasPrefix(ex, strings.ToUpper(a)) {
			return true
		}
	}
	return false
}
