// PackStencil WASM — Client-side label renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o packstencil.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/xob0t/PackStencil/clients/wasm/session"
	"github.com/xob0t/PackStencil/pkg/label"
)

// Templates and fonts registered from JS. Fonts are read from
// fonts/regular.ttf and fonts/bold.ttf.
var assetSession = session.New(nil)

func main() {
	fmt.Println("PackStencil WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderLabel", js.FuncOf(renderLabel))
	js.Global().Set("goPreviewLabel", js.FuncOf(previewLabel))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goListAssets", js.FuncOf(listAssets))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// goRegisterAsset(path, base64Data) — store a template or font under its asset path.
func registerAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need path, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	assetSession.Add(args[0].String(), data)
	return js.ValueOf("ok")
}

// goRemoveAsset(path) — remove an asset from Go memory.
func removeAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need path")
	}
	assetSession.Remove(args[0].String())
	return js.ValueOf("ok")
}

// goListAssets() — registered asset paths as a JSON array.
func listAssets(this js.Value, args []js.Value) interface{} {
	b, _ := json.Marshal(assetSession.Names())
	return js.ValueOf(string(b))
}

// goRenderLabel(requestJSON) — render PDFs and return a JSON result list with
// base64 bytes.
func renderLabel(this js.Value, args []js.Value) interface{} {
	return render(args, assetSession.Engines().Render)
}

// goPreviewLabel(requestJSON) — same as goRenderLabel, with PNG documents.
func previewLabel(this js.Value, args []js.Value) interface{} {
	return render(args, assetSession.Engines().Preview)
}

func render(args []js.Value, e *label.Engine) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need requestJSON")
	}

	var req label.Request
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return js.ValueOf("error: parse request: " + err.Error())
	}

	results, err := e.Render(context.Background(), req)
	if err != nil {
		return js.ValueOf("error: render: " + err.Error())
	}

	out, err := json.Marshal(struct {
		Warnings  []string       `json:"warnings,omitempty"`
		Documents []label.Result `json:"documents"`
	}{label.Validate(req, e.Catalog()), results})
	if err != nil {
		return js.ValueOf("error: encode result: " + err.Error())
	}
	return js.ValueOf(string(out))
}
