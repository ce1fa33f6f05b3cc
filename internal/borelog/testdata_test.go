package borelog

// sampleLog is a free-text export with every header block and three layer
// styles: a trailing depth range, a CSV row and leading depth tokens.
const sampleLog = `BOREHOLE LOG
Project Name: Riverside Bridge Widening
Client Address: PWD Division 4, Guwahati
Job Code: GT-2024-118
Location: Pier P3
Chainage (km): 12.450
Borehole No.: BH-03
Commencement Date: 2024-01-10
Completion Date: 2024-01-12
Mean Sea Level (MSL): 48.25
Method of Boring: Rotary
Diameter of Hole: 150 mm
Standing Water Level: 2.40

Coordinates:
E: 91.7362
L: 26.1445
Lab Tests:
Permeability Tests: 2
SP/VS Tests: 15
Undisturbed Samples (UDS): 3
Disturbed Samples (DS): 4
Water Samples: 1
SOIL LAYER DETAILS
Description,Depth From,Depth To,Thickness
Sandy clay, medium plasticity 0.00-1.50 m
Sample ID: S/D-1
SPT Blows: 3, 4, 5
Remarks: moist
"Silty sand, fine",1.50,4.00,2.50,U-2
Water Loss: partial
4.00 6.00 2.00 Weathered rock
TCR %: 65
RQD %: 30
Termination Depth: 6.00 m
S/D-1 SAMPLE RECEIVED
U-2 SAMPLE NOT RECEIVED
`

// csvLog is a spreadsheet sheet saved as CSV, with labels and values in
// separate cells and trailing empty columns.
const csvLog = `"BOREHOLE LOG",,,,,,
Project Name:,"Ring Road, Package II",,,,,
Job Code:,RR-77,,Borehole No.:,BH-1,,
Coordinates:,E: 512300.5,L: 2901100.25,,,,
Lab Tests:,,,,,,
,SP/VS: 10,UDS: 2,,,,
,,,,,,
Description of Soil,Depth From (m),Depth To (m),Thickness (m),Sample,Sample Depth,Run Length
(m),(m),(m),,,,
Filled up soil,0.00,1.00,1.00,D-1,0.50,,,
Medium dense sand,1.00,3.50,,S/D-2,1.50-1.95,0.45,6,8,11
Sample Type: SPT
Hard clay,3.50,5.00,1.40,UDS-3,4.00,,-,-,-
End of Log,,,,,,
`
