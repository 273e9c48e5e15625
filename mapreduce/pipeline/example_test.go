package pipeline_test

import (
	"context"
	"fmt"
	"os"

	"wordcount/mapreduce/pipeline"
)

func ExampleResult_WriteTo() {
	res, err := pipeline.Count(context.Background(),
		[]string{"to", "be,", "or", "NOT", "to", "be!"}, pipeline.DefaultConfig(), nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	res.WriteTo(os.Stdout)
	// Output:
	// be: 2
	// not: 1
	// or: 1
	// to: 2
}
