package format_test

import (
	"fmt"

	"billdocs/internal/format"
)

func ExampleCurrency() {
	fmt.Println(format.Currency(3495.3625))
	fmt.Println(format.Currency(1250))
	// Output:
	// 3,495.36
	// 1,250.00
}

func ExampleMoney() {
	fmt.Println(format.Money("₦", 243.8625))
	// Output: ₦243.86
}

func ExampleDate() {
	fmt.Println(format.Date("2025-01-31"))
	// Output: January 31, 2025
}
