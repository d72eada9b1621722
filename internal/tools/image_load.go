package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
)

// ImageLoader is the read side of the tiered image cache.
type ImageLoader interface {
	LoadImageData(ctx context.Context, rawURL string) ([]byte, error)
}

// ImageLoadHandler returns the MCP tool handler for the "image-load" tool.
func ImageLoadHandler(images ImageLoader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		url, err := req.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := images.LoadImageData(ctx, url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		mime := http.DetectContentType(data)
		if !strings.HasPrefix(mime, "image/") {
			return mcp.NewToolResultError(fmt.Sprintf("%s is not an image (%s)", url, mime)), nil
		}
		caption := fmt.Sprintf("%s (%s, %s)", url, mime, humanize.IBytes(uint64(len(data))))
		return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(data), mime), nil
	}
}
