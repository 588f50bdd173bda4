package derive

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge_BirthdayBoundary(t *testing.T) {
	birth := date(1990, time.June, 15)
	if got := Age(birth, date(2024, time.June, 15)); got != 34 {
		t.Errorf("age on the birthday = %d, want 34", got)
	}
	if got := Age(birth, date(2024, time.June, 14)); got != 33 {
		t.Errorf("age the day before = %d, want 33", got)
	}
	if got := Age(birth, date(2024, time.December, 31)); got != 34 {
		t.Errorf("age at year end = %d, want 34", got)
	}
	if got := Age(birth, date(2024, time.January, 1)); got != 33 {
		t.Errorf("age at year start = %d, want 33", got)
	}
}

func TestYearsOfService_AverageYear(t *testing.T) {
	now := date(2026, time.July, 1)

	// 10 years and 100 days ago still counts as 10
	hire := now.AddDate(-10, 0, -100)
	if got := YearsOfService(hire, now); got != 10 {
		t.Errorf("10y+100d = %d, want 10", got)
	}

	// exactly 3652 days is just under 10 * 365.25
	if got := YearsOfService(now.AddDate(0, 0, -3652), now); got != 9 {
		t.Errorf("3652 days = %d, want 9", got)
	}
	if got := YearsOfService(now.AddDate(0, 0, -3653), now); got != 10 {
		t.Errorf("3653 days = %d, want 10", got)
	}

	if got := YearsOfService(now.AddDate(0, 0, 5), now); got != 0 {
		t.Errorf("future hire = %d, want 0", got)
	}
}

func TestStockStatus_Ladder(t *testing.T) {
	cases := []struct {
		name         string
		discontinued bool
		units        int
		reorder      int
		want         string
	}{
		{"discontinued wins over stock", true, 500, 0, StockDiscontinued},
		{"discontinued wins over empty", true, 0, 10, StockDiscontinued},
		{"zero units", false, 0, 0, StockOutOfStock},
		{"at reorder level", false, 15, 15, StockReorderRequired},
		{"below reorder level", false, 3, 15, StockReorderRequired},
		{"no reorder level, low", false, 9, 0, StockLowStock},
		{"no reorder level, ten is fine", false, 10, 0, StockInStock},
		{"plenty", false, 120, 25, StockInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StockStatus(tc.discontinued, tc.units, tc.reorder); got != tc.want {
				t.Errorf("StockStatus(%v, %d, %d) = %s, want %s", tc.discontinued, tc.units, tc.reorder, got, tc.want)
			}
		})
	}
}

func TestLineTotal_Exact(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	lt := LineTotal(price, 3, 0.10)
	if want := decimal.RequireFromString("27.00"); !lt.Equal(want) {
		t.Fatalf("LineTotal = %s, want 27.00", lt)
	}

	// a thousand summations stay penny-exact
	sum := decimal.Zero
	for i := 0; i < 1000; i++ {
		sum = sum.Add(lt)
	}
	if want := decimal.RequireFromString("27000.00"); !sum.Equal(want) {
		t.Errorf("1000 line totals = %s, want 27000.00", sum)
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []decimal.Decimal{
		decimal.RequireFromString("27.00"),
		decimal.RequireFromString("12.50"),
	}
	freight := decimal.RequireFromString("4.25")
	got := OrderTotal(lines, freight)
	if want := decimal.RequireFromString("43.75"); !got.Equal(want) {
		t.Errorf("OrderTotal = %s, want 43.75", got)
	}

	if got := OrderTotal(nil, decimal.Zero); !got.Equal(decimal.Zero) {
		t.Errorf("empty order total = %s, want 0", got)
	}
}

func TestHealthScore(t *testing.T) {
	price := decimal.RequireFromString("18.00")
	zero := decimal.Zero

	cases := []struct {
		name string
		in   HealthInput
		want int
	}{
		{"healthy", HealthInput{UnitsInStock: 40, UnitPrice: &price, HasCategory: true, HasSupplier: true}, 100},
		{"discontinued clamps", HealthInput{Discontinued: true, UnitsInStock: 40, UnitPrice: &price, HasCategory: true, HasSupplier: true}, 0},
		{"discontinued and bare floors at zero", HealthInput{Discontinued: true}, 0},
		{"empty stock", HealthInput{UnitsInStock: 0, UnitPrice: &price, HasCategory: true, HasSupplier: true}, 50},
		{"low stock", HealthInput{UnitsInStock: 5, UnitPrice: &price, HasCategory: true, HasSupplier: true}, 75},
		{"missing price", HealthInput{UnitsInStock: 40, HasCategory: true, HasSupplier: true}, 80},
		{"zero price", HealthInput{UnitsInStock: 40, UnitPrice: &zero, HasCategory: true, HasSupplier: true}, 80},
		{"no category", HealthInput{UnitsInStock: 40, UnitPrice: &price, HasSupplier: true}, 85},
		{"no supplier", HealthInput{UnitsInStock: 40, UnitPrice: &price, HasCategory: true}, 90},
		{"orphan with low stock", HealthInput{UnitsInStock: 5, UnitPrice: &price}, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HealthScore(tc.in); got != tc.want {
				t.Errorf("HealthScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOrderStatus(t *testing.T) {
	now := date(2026, time.July, 1)
	ordered := date(2026, time.June, 1)
	shipped := date(2026, time.June, 20)
	dueSoon := date(2026, time.August, 1)
	duePast := date(2026, time.June, 25)

	cases := []struct {
		name                             string
		orderDate, shippedDate, required *time.Time
		want                             string
	}{
		{"no dates", nil, nil, nil, StatusPending},
		{"ordered only", &ordered, nil, &dueSoon, StatusProcessing},
		{"shipped", &ordered, &shipped, &duePast, StatusShipped},
		{"past due unshipped", &ordered, nil, &duePast, StatusOverdue},
		{"past due never ordered", nil, nil, &duePast, StatusOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OrderStatus(tc.orderDate, tc.shippedDate, tc.required, now); got != tc.want {
				t.Errorf("OrderStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTier_InclusiveFloors(t *testing.T) {
	cases := []struct {
		spend string
		want  string
	}{
		{"50000.00", TierPlatinum},
		{"49999.99", TierGold},
		{"25000.00", TierGold},
		{"24999.99", TierSilver},
		{"10000.00", TierSilver},
		{"9999.99", TierBronze},
		{"0", TierBronze},
	}
	for _, tc := range cases {
		if got := Tier(decimal.RequireFromString(tc.spend)); got != tc.want {
			t.Errorf("Tier(%s) = %s, want %s", tc.spend, got, tc.want)
		}
	}
}
