package integrations_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/vitalsgrid/pkg/integrations"
)

func ExampleURLEncode() {
	fmt.Println(integrations.URLEncode("bitcoin,ethereum"))
	// Output:
	// bitcoin%2Cethereum
}

func Example_sentinelErrors() {
	err := fmt.Errorf("fetch simple/price: %w", integrations.ErrNotFound)
	fmt.Println(errors.Is(err, integrations.ErrNotFound))
	fmt.Println(errors.Is(err, integrations.ErrNetwork))
	// Output:
	// true
	// false
}
