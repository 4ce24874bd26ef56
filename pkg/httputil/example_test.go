package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/httputil"
)

func ExampleRetry() {
	attempt := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempt++
		if attempt < 3 {
			return &httputil.RetryableError{Err: errors.New("503 Service Unavailable")}
		}
		return nil
	})
	fmt.Println("attempts:", attempt)
	fmt.Println("error:", err)
	// Output:
	// attempts: 3
	// error: <nil>
}

func ExamplePolicy_Do() {
	p := httputil.Policy{Attempts: 4, Delay: time.Millisecond}
	err := p.Do(context.Background(), func() error {
		return errors.New("404 Not Found")
	})
	fmt.Println(err)
	// Output:
	// 404 Not Found
}
