package storage

import "github.com/lcalzada-xor/netraptor/internal/core/domain"

func toNetworkModel(sessionID string, n domain.NetworkRecord) NetworkModel {
	return NetworkModel{
		SessionID:      sessionID,
		BSSID:          n.BSSID,
		ESSID:          n.ESSID,
		Channel:        n.Channel,
		Band:           string(n.Band()),
		Speed:          n.Speed,
		Power:          n.Power.DBm,
		PowerValid:     n.Power.Valid,
		Privacy:        string(n.Privacy),
		Encryption:     n.Encryption,
		Cipher:         n.Cipher,
		Authentication: n.Authentication,
		Beacons:        n.Beacons,
		DataPackets:    n.DataPackets,
		FirstSeen:      n.FirstSeen,
		LastSeen:       n.LastSeen,
		Backend:        string(n.Backend),
	}
}

func toNetworkRecord(m NetworkModel) domain.NetworkRecord {
	return domain.NetworkRecord{
		BSSID:          m.BSSID,
		ESSID:          m.ESSID,
		Channel:        m.Channel,
		Speed:          m.Speed,
		Power:          domain.Signal{DBm: m.Power, Valid: m.PowerValid},
		Privacy:        domain.Privacy(m.Privacy),
		Encryption:     m.Encryption,
		Cipher:         m.Cipher,
		Authentication: m.Authentication,
		Beacons:        m.Beacons,
		DataPackets:    m.DataPackets,
		FirstSeen:      m.FirstSeen,
		LastSeen:       m.LastSeen,
		Backend:        domain.Backend(m.Backend),
	}
}

func toWPSModel(sessionID string, r domain.WPSRecord) WPSModel {
	return WPSModel{
		SessionID: sessionID,
		BSSID:     r.BSSID,
		Channel:   r.Channel,
		RSSI:      r.RSSI.DBm,
		RSSIValid: r.RSSI.Valid,
		Version:   r.Version,
		Locked:    r.Locked,
		ESSID:     r.ESSID,
	}
}

func toAttackModel(sessionID string, r domain.AttackResult) AttackResultModel {
	return AttackResultModel{
		SessionID:  sessionID,
		BSSID:      r.BSSID,
		PIN:        r.PIN,
		Passphrase: r.Passphrase,
		PMK:        r.PMK,
		LastPIN:    r.LastPIN,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		Reason:     string(r.Reason),
		Artifact:   r.Artifact,
	}
}
