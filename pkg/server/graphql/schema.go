/*
# Module: pkg/server/graphql/schema.go
GraphQL schema for read-only dependency graph introspection.

Defines GraphQL types over depgraph.Graph and builds the executable
schema: a node lookup, a paginated node listing, a substring search, and
aggregate stats. There is no mutation type - the graph is only ever
mutated by a trace or watch run, never through this API.

## Linked Modules
- [../../depgraph](../../depgraph/graph.go) - Graph data structure
- [./resolvers](./resolvers.go) - GraphQL resolvers

## Tags
graphql, schema, server

## Exports
BuildSchema, NodeType, GraphStatsType, PageInfoType, NodeEdgeType,
NodeConnectionType
*/

package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/bundlecore/bundlecore/pkg/depgraph"
)

var (
	// NodeType represents one file in the dependency graph.
	NodeType *graphql.Object

	// GraphStatsType represents aggregate graph statistics.
	GraphStatsType *graphql.Object

	// PageInfoType represents pagination information.
	PageInfoType *graphql.Object

	// NodeEdgeType represents one edge in a NodeConnection.
	NodeEdgeType *graphql.Object

	// NodeConnectionType represents a paginated listing of nodes.
	NodeConnectionType *graphql.Object
)

// BuildSchema builds the read-only GraphQL schema over g.
func BuildSchema(g *depgraph.Graph) (graphql.Schema, error) {
	initTypes()

	resolver := NewResolver(g)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query",
		Description: "Root query type",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type:        NodeType,
				Description: "Get a single node by id (its absolute file path)",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Node id",
					},
				},
				Resolve: resolver.Node,
			},
			"nodes": &graphql.Field{
				Type:        NodeConnectionType,
				Description: "List all nodes with optional filtering and pagination",
				Args: graphql.FieldConfigArgument{
					"permanentOnly": &graphql.ArgumentConfig{
						Type:        graphql.Boolean,
						Description: "Only return permanent-root nodes",
					},
					"first": &graphql.ArgumentConfig{
						Type:        graphql.Int,
						Description: "Maximum number of results",
					},
					"after": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Cursor for pagination",
					},
				},
				Resolve: resolver.Nodes,
			},
			"searchNodes": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(NodeType)),
				Description: "Search node ids by substring",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Search substring",
					},
				},
				Resolve: resolver.SearchNodes,
			},
			"stats": &graphql.Field{
				Type:        GraphStatsType,
				Description: "Get graph statistics",
				Resolve:     resolver.Stats,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func initTypes() {
	GraphStatsType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "GraphStats",
		Description: "Statistics about the dependency graph",
		Fields: graphql.Fields{
			"nodeCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total number of nodes",
			},
			"permanentRootCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of permanent root nodes",
			},
			"pendingJobCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of trace jobs currently in flight",
			},
			"edgeCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total number of dependency edges",
			},
		},
	})

	PageInfoType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "PageInfo",
		Description: "Information about pagination",
		Fields: graphql.Fields{
			"hasNextPage": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether there are more results",
			},
			"hasPreviousPage": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether there are previous results",
			},
			"startCursor": &graphql.Field{
				Type:        graphql.String,
				Description: "Cursor of the first edge",
			},
			"endCursor": &graphql.Field{
				Type:        graphql.String,
				Description: "Cursor of the last edge",
			},
		},
	})

	NodeType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Node",
		Description: "A file in the dependency graph",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.ID),
				Description: "Absolute file path identifying this node",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if n, ok := p.Source.(nodeView); ok {
						return n.id, nil
					}
					return nil, nil
				},
			},
			"permanent": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether this node is a permanent root",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if n, ok := p.Source.(nodeView); ok {
						return n.permanent, nil
					}
					return false, nil
				},
			},
			"dependencyIds": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Ids of nodes this node depends on",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if n, ok := p.Source.(nodeView); ok {
						return n.dependencies, nil
					}
					return []string{}, nil
				},
			},
			"dependentIds": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Ids of nodes that depend on this node",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if n, ok := p.Source.(nodeView); ok {
						return n.dependents, nil
					}
					return []string{}, nil
				},
			},
		},
	})

	NodeType.AddFieldConfig("dependencies", &graphql.Field{
		Type:        graphql.NewList(graphql.NewNonNull(NodeType)),
		Description: "Nodes this node depends on",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			n, ok := p.Source.(nodeView)
			if !ok {
				return []nodeView{}, nil
			}
			g, ok := p.Context.Value(graphContextKey).(*depgraph.Graph)
			if !ok {
				return []nodeView{}, nil
			}
			r := NewResolver(g)
			var out []nodeView
			for _, dep := range n.dependencies {
				if view, ok := r.view(dep); ok {
					out = append(out, view)
				}
			}
			return out, nil
		},
	})

	NodeType.AddFieldConfig("dependents", &graphql.Field{
		Type:        graphql.NewList(graphql.NewNonNull(NodeType)),
		Description: "Nodes that depend on this node",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			n, ok := p.Source.(nodeView)
			if !ok {
				return []nodeView{}, nil
			}
			g, ok := p.Context.Value(graphContextKey).(*depgraph.Graph)
			if !ok {
				return []nodeView{}, nil
			}
			r := NewResolver(g)
			var out []nodeView
			for _, dep := range n.dependents {
				if view, ok := r.view(dep); ok {
					out = append(out, view)
				}
			}
			return out, nil
		},
	})

	NodeEdgeType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "NodeEdge",
		Description: "Edge type for node connections",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type:        graphql.NewNonNull(NodeType),
				Description: "The node",
			},
			"cursor": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Cursor for this edge",
			},
		},
	})

	NodeConnectionType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "NodeConnection",
		Description: "Connection type for node pagination",
		Fields: graphql.Fields{
			"edges": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(NodeEdgeType)),
				Description: "List of node edges",
			},
			"pageInfo": &graphql.Field{
				Type:        graphql.NewNonNull(PageInfoType),
				Description: "Pagination information",
			},
			"totalCount": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total count of nodes",
			},
		},
	})
}
