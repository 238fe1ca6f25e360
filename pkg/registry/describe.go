package registry

// Describe returns the capability descriptor. Every call returns an equal value; the
// skills slice is copied so callers cannot alter the published descriptor.
func (r *Registry) Describe() CapabilityDescriptor {
	d := r.descriptor
	d.Skills = make([]SkillDescriptor, len(r.descriptor.Skills))
	copy(d.Skills, r.descriptor.Skills)
	return d
}
