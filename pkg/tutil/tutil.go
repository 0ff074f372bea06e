package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest reports whether tests that need a running IPFS node
// should run. Set IPFSDAV_TEST=integration to enable them.
func IsIntegrationTest() bool {
	testType := os.Getenv("IPFSDAV_TEST")
	return strings.ToLower(testType) == "integration"
}

// IPFSAPIURL is the node RPC API that integration tests talk to.
func IPFSAPIURL() string {
	if url := os.Getenv("IPFSDAV_IPFS_API"); url != "" {
		return url
	}

	return "http://127.0.0.1:5001"
}
