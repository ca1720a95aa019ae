package diff

// Builder accumulates a difference before sealing it. Producers chain the
// With* methods and call Build exactly once.
type Builder struct {
	d Difference
}

// NewDifference starts a builder for the given code.
func NewDifference(code string) *Builder {
	return &Builder{d: Difference{Code: code}}
}

// WithName sets the human label.
func (b *Builder) WithName(name string) *Builder {
	b.d.Name = name
	return b
}

// WithDescription sets the description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.d.Description = desc
	return b
}

// AddClassification records the severity for one dimension.
func (b *Builder) AddClassification(dim Dimension, sev Severity) *Builder {
	if b.d.Classification == nil {
		b.d.Classification = make(map[Dimension]Severity, int(dimensionCount))
	}
	b.d.Classification[dim] = sev
	return b
}

// WithCriticality overrides the criticality that would otherwise come from
// the severity mapping.
func (b *Builder) WithCriticality(c Criticality) *Builder {
	b.d.Criticality = c
	return b
}

// WithJustification records a justification.
func (b *Builder) WithJustification(j string) *Builder {
	b.d.Justification = j
	return b
}

// AddAttachment records one attachment.
func (b *Builder) AddAttachment(key, value string) *Builder {
	if b.d.Attachments == nil {
		b.d.Attachments = make(map[string]string, 4)
	}
	b.d.Attachments[key] = value
	return b
}

// WithIdentifyingAttachments names the attachment keys identifying the
// difference.
func (b *Builder) WithIdentifyingAttachments(keys ...string) *Builder {
	b.d.IdentifyingAttachments = append(b.d.IdentifyingAttachments, keys...)
	return b
}

// Build seals and returns the difference.
func (b *Builder) Build() Difference {
	return b.d
}

// From starts a builder seeded with an existing difference, for transforms
// that derive a replacement.
func From(d Difference) *Builder {
	c := d
	if d.Classification != nil {
		c.Classification = make(map[Dimension]Severity, len(d.Classification))
		for k, v := range d.Classification {
			c.Classification[k] = v
		}
	}
	if d.Attachments != nil {
		c.Attachments = make(map[string]string, len(d.Attachments))
		for k, v := range d.Attachments {
			c.Attachments[k] = v
		}
	}
	c.IdentifyingAttachments = append([]string(nil), d.IdentifyingAttachments...)
	return &Builder{d: c}
}
