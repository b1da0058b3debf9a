package domain

// BluetoothDevice is a classic Bluetooth device answering an inquiry scan.
type BluetoothDevice struct {
	MAC  string `json:"mac"`
	Name string `json:"name"`
}
