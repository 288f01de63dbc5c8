// Package tools exposes the analysis operations as a callable tool registry
// with JSON-schema parameter descriptions, suitable for assistant function
// calling or direct API execution.
package tools

import (
	"fmt"
	"sync"
)

// Tool represents a callable tool with its metadata and execution function
type Tool struct {
	Name        string
	DisplayName string // User-friendly name (e.g., "Get Brain Data")
	Description string
	Parameters  map[string]interface{}
	Execute     ExecuteFunc
	Category    string   // Tool category: data, analysis, patterns, insights
	Keywords    []string // Keywords for discovery
}

// ExecuteFunc is the function signature for tool execution
type ExecuteFunc func(args map[string]interface{}) (string, error)

// Registry manages all available tools
type Registry struct {
	tools map[string]*Tool
	order []string // registration order, for stable listings
	mutex sync.RWMutex
}

// NewRegistry creates an empty registry. Callers register the domain tools
// with their service dependencies bound.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a new tool to the registry
func (r *Registry) Register(tool *Tool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if tool.Execute == nil {
		return fmt.Errorf("tool %s must have an Execute function", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tools in OpenAI tool format
func (r *Registry) List() []map[string]interface{} {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]map[string]interface{}, 0, len(r.tools))
	for _, name := range r.order {
		tool := r.tools[name]
		tools = append(tools, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return tools
}

// Execute runs a tool by name with given arguments
func (r *Registry) Execute(name string, args map[string]interface{}) (string, error) {
	tool, exists := r.Get(name)
	if !exists {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return tool.Execute(args)
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tools)
}

// ToolInfo is a JSON-serializable representation of a Tool (without the Execute function)
type ToolInfo struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Parameters  map[string]interface{} `json:"parameters"`
	Keywords    []string               `json:"keywords"`
}

// ListDetailed returns all tools with full metadata (for the tools API)
func (r *Registry) ListDetailed() []ToolInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]ToolInfo, 0, len(r.tools))
	for _, name := range r.order {
		tool := r.tools[name]
		result = append(result, ToolInfo{
			Name:        tool.Name,
			DisplayName: tool.DisplayName,
			Description: tool.Description,
			Category:    tool.Category,
			Parameters:  tool.Parameters,
			Keywords:    tool.Keywords,
		})
	}
	return result
}

// GetCategories returns a map of category names to their tool counts
func (r *Registry) GetCategories() map[string]int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	categories := make(map[string]int)
	for _, tool := range r.tools {
		if tool.Category != "" {
			categories[tool.Category]++
		}
	}
	return categories
}
