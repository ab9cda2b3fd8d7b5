package yawn

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// JSON Patch (RFC 6902) and JSON Merge Patch (RFC 7386) public API
// --------------------------------------------------------------------------------------
//
// Patches are applied to the document's value; the result is assigned with
// SetValue, so the same first-level limits apply.

// ApplyJSONPatchBytes decodes a JSON Patch and applies it.
func (d *Document) ApplyJSONPatchBytes(patchJSON []byte) error {
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return fmt.Errorf("yawn: invalid JSON Patch: %w", err)
	}
	return d.ApplyJSONPatch(patch)
}

// ApplyJSONPatch applies a github.com/evanphx/json-patch/v5 Patch.
func (d *Document) ApplyJSONPatch(patch jsonpatch.Patch) error {
	return d.patchJSON(func(doc []byte) ([]byte, error) {
		opts := jsonpatch.NewApplyOptions()
		opts.EnsurePathExistsOnAdd = true
		return patch.ApplyWithOptions(doc, opts)
	})
}

// ApplyMergePatch applies a JSON Merge Patch.
func (d *Document) ApplyMergePatch(patchJSON []byte) error {
	return d.patchJSON(func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patchJSON)
	})
}

func (d *Document) patchJSON(apply func(doc []byte) ([]byte, error)) error {
	cur, err := d.Value()
	if err != nil {
		return err
	}
	doc, err := cur.MarshalJSON()
	if err != nil {
		return err
	}
	out, err := apply(doc)
	if err != nil {
		return fmt.Errorf("yawn: failed to apply patch: %w", err)
	}
	next, err := ParseValue(out)
	if err != nil {
		return err
	}
	return d.SetValue(next)
}
