package arrowdoc

// txnSnapshot captures everything a rollback must restore: idIndex and
// binaryIndices are shallow-snapshotted (their position slices are copied,
// but positions are plain ints so a copy is already a full value-copy),
// Data is deep-cloned since it holds arbitrary document structures, and
// unique-index state travels along too, so a failed mutation leaves Data,
// IdIndex, every binary index, and uniqueness bookkeeping all unchanged.
type txnSnapshot struct {
	data          []Document
	ids           *idIndex
	maxID         int64
	binaryIndices map[string]*binaryIndex
	uniqueIndices map[string]*uniqueIndex
}

// startTransaction snapshots collection state on entry to every mutation.
// When Collection.opts.Transactional is false this is a no-op — a failed
// mutation on a non-transactional collection is allowed to leave partial
// state behind.
func (c *Collection) startTransaction() {
	if !c.opts.Transactional {
		return
	}

	data := make([]Document, len(c.data))
	for i, d := range c.data {
		data[i] = deepCloneDocument(d)
	}

	binIdx := make(map[string]*binaryIndex, len(c.binaryIndices))
	for field, b := range c.binaryIndices {
		binIdx[field] = b.clone()
	}

	uniqIdx := make(map[string]*uniqueIndex, len(c.uniqueIndices))
	for field, u := range c.uniqueIndices {
		uniqIdx[field] = u.clone()
	}

	c.txn = &txnSnapshot{
		data:          data,
		ids:           c.ids.clone(),
		maxID:         c.maxID,
		binaryIndices: binIdx,
		uniqueIndices: uniqIdx,
	}

	for _, v := range c.views {
		v.StartTransaction()
	}
}

// commitTransaction clears the snapshot and commits every dynamic view.
func (c *Collection) commitTransaction() {
	if !c.opts.Transactional {
		return
	}
	c.txn = nil
	for _, v := range c.views {
		v.Commit()
	}
}

// rollbackTransaction restores Data, IdIndex, binary indices and unique
// indices from the snapshot taken at mutation entry, and rolls back every
// dynamic view.
func (c *Collection) rollbackTransaction() {
	if !c.opts.Transactional || c.txn == nil {
		return
	}
	c.data = c.txn.data
	c.ids = c.txn.ids
	c.maxID = c.txn.maxID
	c.binaryIndices = c.txn.binaryIndices
	c.uniqueIndices = c.txn.uniqueIndices
	c.txn = nil

	for _, v := range c.views {
		v.Rollback()
	}
}
