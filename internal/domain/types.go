package domain

// ResourceInfo is the normalized description of one endpoint of a connection
// attempt, assembled from the provider lookups before any evaluation runs.
type ResourceInfo struct {
	ResourceType     string
	Name             string
	VPCID            string
	SubnetIDs        []string
	SecurityGroupIDs []string
	CIDR             AddressBlock
	// Port is the listener port for destination resources; zero for sources.
	Port int
}

// VPC holds the subnets of one VPC, keyed by subnet ID. Two resources are
// considered connectable only when their VPC IDs are equal; no peering or
// gateway traversal is attempted.
type VPC struct {
	ID      string
	Subnets map[string]Subnet
}

type Subnet struct {
	VPCID            string
	ID               string
	CIDR             AddressBlock
	AvailabilityZone string
	RouteTableID     string
	// Gateway is the target of the subnet's default route, when one exists.
	Gateway string
}

type RouteTable struct {
	VPCID   string
	ID      string
	Gateway string
}
