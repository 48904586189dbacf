package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/posprint/receipt-templates/internal/assemble"
	"github.com/posprint/receipt-templates/internal/binding"
	"github.com/posprint/receipt-templates/internal/preview"
	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

func main() {
	var (
		templatePath string
		dataPath     string
		pngPath      string
		locale       string
		currency     string
	)

	flag.StringVar(&templatePath, "template", "", "Template JSON file (built-in default when omitted)")
	flag.StringVar(&dataPath, "data", "", "Render data JSON file")
	flag.StringVar(&pngPath, "png", "", "Write a PNG preview to this path instead of fragment JSON")
	flag.StringVar(&locale, "locale", resolve.DefaultLocale, "Formatting locale")
	flag.StringVar(&currency, "currency", resolve.DefaultCurrency, "Currency code")
	flag.Parse()

	doc := templateformat.DefaultDocument()
	if templatePath != "" {
		var err error
		doc, err = templateformat.ParseFile(templatePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading template: %v\n", err)
			os.Exit(1)
		}
	}

	var data map[string]interface{}
	if dataPath != "" {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading data file: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing data file: %v\n", err)
			os.Exit(1)
		}
	}

	// Local renders have no view backend; ext stays empty.
	assembler := assemble.New(
		binding.NewResolver(nil),
		resolve.NewFormatter(locale, currency),
	)

	rendered := assembler.Assemble(context.Background(), doc, data)

	if pngPath != "" {
		img := preview.Render(rendered)

		f, err := os.Create(pngPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating PNG file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		if err := png.Encode(f, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Preview written to %s\n", pngPath)
		return
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}
