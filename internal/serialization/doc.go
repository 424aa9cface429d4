// Package serialization reads and writes model weights in SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size N (uint64 LE)]
//	  [N bytes: JSON header, space-padded to a multiple of 8]
//	  [Tensor data: raw little-endian bytes, tensors in name order]
//
// The JSON header maps each tensor name to its dtype, shape and
// [begin, end) byte range in the data section. The optional
// "__metadata__" entry holds string key/value pairs. The writer always
// stamps a SHA-256 of the data section under the "sha256" key, and the
// reader verifies it when present.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteFile("lenet.safetensors", nn.StateDict(model), map[string]string{"arch": "lenet"})
//
//	// Load
//	f, err := serialization.ReadFile("lenet.safetensors")
//	stateDict, err := f.StateDict()
//	err = nn.LoadStateDict(model, stateDict)
package serialization
