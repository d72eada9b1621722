package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Kim-Junhwan/ImageFeed/internal/imagecache"
)

// Clearer purges cached image data.
type Clearer interface {
	Clear()
}

// CacheClearHandler returns the MCP tool handler for the "image-cache-clear" tool.
func CacheClearHandler(images Clearer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		images.Clear()
		return mcp.NewToolResultText("Image cache cleared."), nil
	}
}

// StatsSource exposes the tier counters.
type StatsSource interface {
	Stats() imagecache.Stats
}

// DiskUsage exposes the disk tier's footprint.
type DiskUsage interface {
	Usage() (int64, error)
	Len() (int, error)
	Budget() int64
}

// CacheStatsHandler returns the MCP tool handler for the "image-cache-stats" tool.
func CacheStatsHandler(images StatsSource, disk DiskUsage, memoryBudget int64) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(formatStats(images.Stats(), disk, memoryBudget)), nil
	}
}

func formatStats(s imagecache.Stats, disk DiskUsage, memoryBudget int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Memory: %d entries, %s of %s\n",
		s.MemoryEntries, humanize.IBytes(uint64(s.MemoryBytes)), humanize.IBytes(uint64(memoryBudget)))

	used, usedErr := disk.Usage()
	count, countErr := disk.Len()
	if usedErr != nil || countErr != nil {
		sb.WriteString("Disk: unavailable\n")
	} else {
		fmt.Fprintf(&sb, "Disk: %d entries, %s of %s\n",
			count, humanize.IBytes(uint64(used)), humanize.IBytes(uint64(disk.Budget())))
	}

	fmt.Fprintf(&sb, "Hits: memory %s, disk %s\n", humanize.Comma(s.MemoryHits), humanize.Comma(s.DiskHits))
	fmt.Fprintf(&sb, "Network: %s loads, %s errors\n", humanize.Comma(s.NetworkLoads), humanize.Comma(s.NetworkErrors))
	fmt.Fprintf(&sb, "Disk faults: %s reads, %s writes", humanize.Comma(s.DiskErrors), humanize.Comma(s.WriteFailures))
	return sb.String()
}
