package socket

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// PreparePacket prepares a raw UDP network packet including Ethernet, IP and UDP layers
func PreparePacket(srcMAC net.HardwareAddr, srcIP net.IP, dstMAC net.HardwareAddr, dstIP net.IP, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()

	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}

	ethernet := &layers.Ethernet{
		DstMAC:       dstMAC,
		SrcMAC:       srcMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}

	ip := &layers.IPv4{
		Version:  4,
		TTL:      255,
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Protocol: layers.IPProtocolUDP,
		Flags:    layers.IPv4DontFragment,
	}

	udp := &layers.UDP{
		SrcPort: layers.UDPPort(67),
		DstPort: layers.UDPPort(68),
	}

	udp.SetNetworkLayerForChecksum(ip)

	err := gopacket.SerializeLayers(buf, opts,
		ethernet,
		ip,
		udp,
		gopacket.Payload(payload))

	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// extractUDPPayload decodes an Ethernet frame and returns the payload of
// the contained UDP datagram if it is addressed to the given port. The
// returned address carries the link and network layer sender so
// responses can skip ARP resolution
func extractUDPPayload(port int, frame []byte) ([]byte, *Addr, bool) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)

	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	udpLayer := packet.Layer(layers.LayerTypeUDP)

	if ethLayer == nil || ipLayer == nil || udpLayer == nil {
		return nil, nil, false
	}

	eth := ethLayer.(*layers.Ethernet)
	ip := ipLayer.(*layers.IPv4)
	udp := udpLayer.(*layers.UDP)

	if int(udp.DstPort) != port {
		return nil, nil, false
	}

	addr := &Addr{
		RawAddr: RawAddr{
			MAC:  eth.SrcMAC,
			IP:   ip.SrcIP,
			Port: uint16(udp.SrcPort),
		},
		Local: RawAddr{
			MAC:  eth.DstMAC,
			IP:   ip.DstIP,
			Port: uint16(udp.DstPort),
		},
	}

	return udp.Payload, addr, true
}
