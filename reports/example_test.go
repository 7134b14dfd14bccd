package reports_test

import (
	"context"
	"fmt"

	"github.com/infigaming-com/go-currency/reports"
)

type rateRow struct {
	Code string
	Rate float64
}

func ExampleTable_Generate() {
	table := reports.NewTable[rateRow]().
		Add("Currency", func(r rateRow) any { return r.Code }, nil).
		Add("Rate", func(r rateRow) any { return r.Rate }, nil)

	content, ext, err := table.Generate(context.Background(), reports.FormatCSV, []rateRow{
		{Code: "KES", Rate: 1},
		{Code: "USD", Rate: 0.0077},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(ext)
	fmt.Print(string(content))
	// Output:
	// csv
	// Currency,Rate
	// KES,1
	// USD,0.0077
}
