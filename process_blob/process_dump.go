package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gosight/process"
	"gosight/process/memory_map"
)

// A dump directory holds metadata.json, process_memory_map.json and one
// blob_0x<addr>_<size>.bin file per saved region.
const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"
)

type dumpMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
}

func blobFilename(dirname string, region memory_map.MemoryMapItem) string {
	return filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size))
}

// Load reads a dump directory into a new Image. Regions without a blob file
// are left unmapped.
func Load(dirname string) (*Image, error) {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata dumpMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	mmBytes, err := os.ReadFile(filepath.Join(dirname, memoryMapFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	img := NewImage()
	img.PID = metadata.PID
	img.Name = metadata.Name

	for _, region := range mm {
		data, err := os.ReadFile(blobFilename(dirname, region))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read blob 0x%x: %w", region.Address, err)
		}
		if len(data) == 0 {
			continue
		}

		if err := img.AddRegion(process.ProcessMemoryAddress(region.Address), data, region.Perms); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// Save writes every readable region of proc no larger than maxRegion into a
// dump directory. Unreadable regions are recorded in the map but get no blob.
func Save(proc process.Process, name string, dirname string, maxRegion process.ProcessMemorySize) error {
	if err := proc.UpdateMemoryMap(); err != nil {
		return err
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return err
	}

	metadataBytes, err := json.MarshalIndent(dumpMetadata{PID: proc.GetPID(), Name: name}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirname, metadataFile), metadataBytes, 0o644); err != nil {
		return err
	}

	mmBytes, err := json.MarshalIndent(mm, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirname, memoryMapFile), mmBytes, 0o644); err != nil {
		return err
	}

	for _, region := range mm {
		if !region.IsReadable() || process.ProcessMemorySize(region.Size) > maxRegion {
			continue
		}

		data, err := proc.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			// guard pages and device mappings
			continue
		}

		if err := os.WriteFile(blobFilename(dirname, region), data, 0o644); err != nil {
			return err
		}
	}

	return nil
}
