package plexus

import "github.com/arloliu/plexus/types"

// weaveResults merges the read-set and write-set result vectors back
// into a single vector ordered exactly as the caller's input batch.
//
// The read results pair positionally with the read set, the write
// results with the write set; each result is written into the original
// index its statement was tagged with. Since every input index appears
// exactly once across the two sets, every slot of the merged vector
// ends up filled.
//
// A result vector whose length differs from its statement set indicates
// a misbehaving session collaborator and yields ErrResultCountMismatch.
func weaveResults(reads, writes []indexedStatement, readResults, writeResults []types.Result) ([]types.Result, error) {
	if len(readResults) != len(reads) || len(writeResults) != len(writes) {
		return nil, types.ErrResultCountMismatch
	}

	merged := make([]types.Result, len(reads)+len(writes))
	for i, tagged := range reads {
		merged[tagged.index] = readResults[i]
	}
	for i, tagged := range writes {
		merged[tagged.index] = writeResults[i]
	}

	return merged, nil
}
