package domain

// Snapshot is a point-in-time copy of an owner's collections. Nothing in it aliases the
// store's memory, so it can be read without locks.
type Snapshot struct {
	Clients         []Client
	Projects        []Project
	Payments        []Payment
	PaymentMethods  []PaymentMethod
	BusinessProfile *BusinessProfile
}

func (s Snapshot) Client(id string) (Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

func (s Snapshot) Project(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func (s Snapshot) Payment(id string) (Payment, bool) {
	for _, p := range s.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return Payment{}, false
}

// ProjectsForClient returns the client's projects in store order.
func (s Snapshot) ProjectsForClient(clientID string) []Project {
	var out []Project
	for _, p := range s.Projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

func (s Snapshot) PaymentsForProject(projectID string) []Payment {
	var out []Payment
	for _, p := range s.Payments {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out
}

func (s Snapshot) PaymentsForClient(clientID string) []Payment {
	var out []Payment
	for _, p := range s.Payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPaymentMethod returns the first method flagged as default.
func (s Snapshot) DefaultPaymentMethod() (PaymentMethod, bool) {
	for _, m := range s.PaymentMethods {
		if m.IsDefault {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
